package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	driveerrors "github.com/marmos91/dittodrive/pkg/drive/errors"
)

func TestParseTriad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"rwx", "rwxd"},
		{"r-x", "r-x-"},
		{"---", "----"},
		{"-w-", "-w-d"},
		{"rwxd", "rwxd"},
		{"r--d", "r--d"},
		{"rw--", "rw--"},
		{"----", "----"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseTriad(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseTriad_Invalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "rw", "rwxdx", "xwr", "rwq", "rwxr"} {
		_, err := ParseTriad(in)
		assert.Error(t, err, in)
		assert.Equal(t, driveerrors.ErrInvalidArgument, driveerrors.CodeOf(err), in)
	}
}

func TestParsePermissions(t *testing.T) {
	t.Parallel()

	t.Run("seven character umask form", func(t *testing.T) {
		t.Parallel()
		p, err := ParsePermissions("rwx:r-x")
		require.NoError(t, err)

		assert.Equal(t, "rwxd", p.Owner.String())
		assert.Equal(t, "r-x-", p.Others.String())
	})

	t.Run("delimiter character is free", func(t *testing.T) {
		t.Parallel()
		a := MustParsePermissions("rwx:r--")
		b := MustParsePermissions("rwx|r--")

		assert.Equal(t, a, b)
	})

	t.Run("eight character rendered form", func(t *testing.T) {
		t.Parallel()
		p, err := ParsePermissions("rwxdr-x-")
		require.NoError(t, err)

		assert.Equal(t, "rwxdr-x-", p.String())
	})

	t.Run("nine character delimited form", func(t *testing.T) {
		t.Parallel()
		p, err := ParsePermissions("rw--:r--d")
		require.NoError(t, err)

		assert.Equal(t, "rw--r--d", p.String())
	})

	t.Run("bad length", func(t *testing.T) {
		t.Parallel()
		_, err := ParsePermissions("rwx")
		assert.Error(t, err)
	})

	t.Run("bad letter", func(t *testing.T) {
		t.Parallel()
		_, err := ParsePermissions("rwz:r-x")
		assert.Error(t, err)
	})
}

func TestPermissions_Text(t *testing.T) {
	t.Parallel()

	p := MustParsePermissions("rwx:r--")
	text, err := p.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "rwxdr---", string(text))

	var back Permissions
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, p, back)

	assert.Error(t, back.UnmarshalText([]byte("nope")))
}

func TestMustParsePermissions_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { MustParsePermissions("bad") })
}

func TestTriad_Has(t *testing.T) {
	t.Parallel()

	assert.True(t, TriadFull.Has(RightRead))
	assert.True(t, TriadFull.Has(RightDelete))
	assert.False(t, TriadNone.Has(RightRead))

	tr, err := ParseTriad("r-x")
	require.NoError(t, err)
	assert.True(t, tr.Has(RightRead))
	assert.False(t, tr.Has(RightWrite))
	assert.True(t, tr.Has(RightExecute))
	assert.False(t, tr.Has(RightDelete))
}

func TestRight_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "read", RightRead.String())
	assert.Equal(t, "write", RightWrite.String())
	assert.Equal(t, "execute", RightExecute.String())
	assert.Equal(t, "delete", RightDelete.String())
	assert.Equal(t, "right(64)", Right(64).String())
}
