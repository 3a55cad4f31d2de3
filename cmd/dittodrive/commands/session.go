package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/marmos91/dittodrive/internal/cli/output"
	"github.com/marmos91/dittodrive/internal/cli/timeutil"
	"github.com/marmos91/dittodrive/pkg/drive/service"
)

// session runs drive commands for one principal and prints the results.
// Relative paths resolve against cwd.
type session struct {
	svc  *service.Service
	user string
	cwd  string
	out  *output.Printer
}

func newSession(svc *service.Service, user string, out *output.Printer) *session {
	return &session{svc: svc, user: user, cwd: "/", out: out}
}

// resolve makes p absolute. Absolute paths are passed through untouched
// so the drive sees "." and ".." components as typed.
func (s *session) resolve(p string) string {
	if p == "" {
		return s.cwd
	}
	if strings.HasPrefix(p, "/") {
		return p
	}
	return strings.TrimSuffix(s.cwd, "/") + "/" + p
}

// done reports a created or changed entry: a message for tables, the
// entry itself for JSON and YAML.
func (s *session) done(info *service.EntryInfo, msg string) error {
	if s.out.Format() == output.FormatTable {
		s.out.Success(msg)
		return nil
	}
	return s.out.Print(info)
}

func (s *session) mkdir(ctx context.Context, p string) error {
	info, err := s.svc.Mkdir(ctx, s.user, s.resolve(p))
	if err != nil {
		return err
	}
	return s.done(info, "Created directory "+info.Path)
}

func (s *session) write(ctx context.Context, p, data string) error {
	info, err := s.svc.WriteFile(ctx, s.user, s.resolve(p), data)
	if err != nil {
		return err
	}
	return s.done(info, fmt.Sprintf("Wrote %s to %s", timeutil.FormatSize(info.Size, false), info.Path))
}

func (s *session) app(ctx context.Context, p, program string) error {
	info, err := s.svc.CreateApp(ctx, s.user, s.resolve(p), program)
	if err != nil {
		return err
	}
	return s.done(info, fmt.Sprintf("Created app %s running %q", info.Path, info.Program))
}

// ln keeps target as typed: links resolve it when followed.
func (s *session) ln(ctx context.Context, target, p string) error {
	info, err := s.svc.Symlink(ctx, s.user, target, s.resolve(p))
	if err != nil {
		return err
	}
	return s.done(info, fmt.Sprintf("Linked %s -> %s", info.Path, info.Target))
}

func (s *session) rm(ctx context.Context, p string) error {
	abs := s.resolve(p)
	if err := s.svc.Remove(ctx, s.user, abs); err != nil {
		return err
	}
	if s.out.Format() == output.FormatTable {
		s.out.Success("Removed " + abs)
	}
	return nil
}

func (s *session) chmod(ctx context.Context, perms, p string) error {
	info, err := s.svc.Chmod(ctx, s.user, s.resolve(p), perms)
	if err != nil {
		return err
	}
	return s.done(info, fmt.Sprintf("Permissions of %s set to %s", info.Path, info.Permissions))
}

func (s *session) importDoc(ctx context.Context, p string, doc []byte) error {
	info, err := s.svc.Import(ctx, s.user, s.resolve(p), doc)
	if err != nil {
		return err
	}
	return s.done(info, fmt.Sprintf("Imported %s as id %d (%s)", info.Path, info.ID, info.Permissions))
}

// text prints a listing or content as-is, or as a list of lines for JSON
// and YAML.
func (s *session) text(out string) error {
	if s.out.Format() == output.FormatTable {
		s.out.Text(out)
		return nil
	}
	return s.out.Print(strings.Split(out, "\n"))
}

func (s *session) ls(ctx context.Context, p string, opts service.ListOptions) error {
	out, err := s.svc.List(ctx, s.user, s.resolve(p), opts)
	if err != nil {
		return err
	}
	return s.text(out)
}

func (s *session) cat(ctx context.Context, p string) error {
	out, err := s.svc.Cat(ctx, s.user, s.resolve(p))
	if err != nil {
		return err
	}
	s.out.Text(out)
	return nil
}

func (s *session) run(ctx context.Context, p string) error {
	out, err := s.svc.Execute(ctx, s.user, s.resolve(p))
	if err != nil {
		return err
	}
	s.out.Text(out)
	return nil
}

func (s *session) stat(ctx context.Context, p string) error {
	info, err := s.svc.Stat(ctx, s.user, s.resolve(p))
	if err != nil {
		return err
	}
	if s.out.Format() != output.FormatTable {
		return s.out.Print(info)
	}
	return output.KeyValues(s.out.Writer(), infoPairs(info))
}

// cd moves cwd to the directory at p. The drive resolves "." and ".."
// and checks execute on the target, so cwd is always a canonical path.
func (s *session) cd(ctx context.Context, p string) error {
	info, err := s.svc.Chdir(ctx, s.user, s.resolve(p))
	if err != nil {
		return err
	}
	s.cwd = info.Path
	return nil
}

func infoPairs(info *service.EntryInfo) [][2]string {
	pairs := [][2]string{
		{"ID", strconv.Itoa(info.ID)},
		{"Path", info.Path},
		{"Kind", info.Kind},
		{"Owner", info.Owner},
		{"Permissions", info.Permissions},
		{"Effective", info.Effective},
		{"Size", timeutil.FormatSize(info.Size, info.Kind == "directory")},
		{"Modified", timeutil.FormatTime(info.ModifiedAt)},
	}
	if info.Target != "" {
		pairs = append(pairs, [2]string{"Target", info.Target})
	}
	if info.Program != "" {
		pairs = append(pairs, [2]string{"Program", info.Program})
	}
	return pairs
}
