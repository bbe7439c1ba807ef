package blob

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSetter struct {
	got map[string]*Blob
}

func (r *recordingSetter) Set(_ context.Context, key string, b *Blob) error {
	if r.got == nil {
		r.got = map[string]*Blob{}
	}
	r.got[key] = b
	return nil
}

func TestNormalize_TypePrecedence(t *testing.T) {
	cases := []struct {
		name      string
		in        *Blob
		preferred string
		want      string
	}{
		{"own type wins", &Blob{Data: []byte{1}, Type: "image/png"}, "image/jpeg", "image/png"},
		{"preferred when empty", &Blob{Data: []byte{1}}, "image/jpeg", "image/jpeg"},
		{"default when nothing known", &Blob{Data: []byte{1}}, "", DefaultType},
		{"nil blob", nil, "image/gif", "image/gif"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			out := Normalize(tc.in, tc.preferred)
			require.NotNil(t, out)
			assert.Equal(t, tc.want, out.Type)
			assert.NotNil(t, out.Data)
		})
	}
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	in := &Blob{Data: []byte("abc")}
	out := Normalize(in, "image/webp")
	assert.Equal(t, "", in.Type)
	assert.Equal(t, "image/webp", out.Type)
	assert.Equal(t, []byte("abc"), out.Data)
	assert.EqualValues(t, 3, out.Size())
}

func TestSetNormalized(t *testing.T) {
	s := &recordingSetter{}
	err := SetNormalized(context.Background(), s, "img_1", &Blob{Data: []byte{9, 9}}, "image/bmp")
	require.NoError(t, err)
	assert.Equal(t, "image/bmp", s.got["img_1"].Type)

	err = SetNormalized(context.Background(), s, "", &Blob{}, "")
	assert.Error(t, err)
}
