package drive

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
	"unicode/utf8"

	driveerrors "github.com/marmos91/dittodrive/pkg/drive/errors"
)

// ImportRecord is an externally serialised entry header. Only the
// identifier and the permission pair are restored from it; the element
// name is free, so <dir id="7"> and <file id="7"> decode the same way.
//
//	<dir id="7"><perm>rwxdr-x-</perm></dir>
type ImportRecord struct {
	XMLName xml.Name
	ID      string  `xml:"id,attr"`
	Perm    *string `xml:"perm"`
}

// DecodeImportRecord decodes one record. Any failure, including content
// that is not valid UTF-8, is reported as ImportDocument.
func DecodeImportRecord(doc []byte) (ImportRecord, error) {
	if !utf8.Valid(doc) {
		return ImportRecord{}, driveerrors.NewImportDocumentError(sniffID(doc))
	}
	var rec ImportRecord
	if err := xml.Unmarshal(doc, &rec); err != nil {
		return ImportRecord{}, driveerrors.NewImportDocumentError(sniffID(doc))
	}
	return rec, nil
}

// sniffID pulls the id attribute out of a record that failed to decode,
// so the error names the offending record when possible.
func sniffID(doc []byte) string {
	const attr = `id="`
	i := bytes.Index(doc, []byte(attr))
	if i < 0 {
		return ""
	}
	rest := doc[i+len(attr):]
	j := bytes.IndexByte(rest, '"')
	if j < 0 || !utf8.Valid(rest[:j]) {
		return ""
	}
	return string(rest[:j])
}

// Import decodes doc and applies it to e.
func (fs *FileSystem) Import(e Entry, doc []byte) error {
	rec, err := DecodeImportRecord(doc)
	if err != nil {
		return err
	}
	return fs.ApplyImport(e, rec)
}

// ApplyImport restores the identifier and, when present, the permission
// pair of e. The record is validated completely before e changes.
//
// The identifier must be an integer not used by another live entry. The
// allocator is moved past it so later creations never collide with it.
func (fs *FileSystem) ApplyImport(e Entry, rec ImportRecord) error {
	b := e.base()
	if b.fs != fs {
		return driveerrors.NewInvalidArgumentError("entry does not belong to this file system")
	}

	id, err := strconv.Atoi(strings.TrimSpace(rec.ID))
	if err != nil {
		return driveerrors.NewImportDocumentError(rec.ID)
	}
	if other, ok := fs.index[id]; ok && other != e {
		return driveerrors.NewImportDocumentError(rec.ID)
	}

	perms := b.perms
	if rec.Perm != nil {
		perms, err = ParsePermissions(strings.TrimSpace(*rec.Perm))
		if err != nil {
			return driveerrors.NewImportDocumentError(rec.ID)
		}
	}

	delete(fs.index, b.id)
	b.id = id
	b.perms = perms
	fs.index[id] = e
	fs.reserveID(id)
	return nil
}
