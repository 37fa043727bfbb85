package app

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func encodedPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestImageIntake_Accepts(t *testing.T) {
	in := NewImageIntake(100, 0)
	require.Equal(t, int64(DefaultMaxImageBytes), in.MaxBytes())

	cfg, format, err := in.Check(encodedPNG(t, 640, 480))
	require.NoError(t, err)
	require.Equal(t, "png", format)
	require.Equal(t, 640, cfg.Width)

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 100, 120)), nil))
	_, format, err = in.Check(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
}

func TestImageIntake_RejectsTinyImage(t *testing.T) {
	in := NewImageIntake(0, 0)

	_, _, err := in.Check(encodedPNG(t, 1, 7))
	require.ErrorIs(t, err, ErrImageTooSmall)
	require.Contains(t, err.Error(), "1x7")

	_, _, err = in.Check(encodedPNG(t, 640, 99))
	require.ErrorIs(t, err, ErrImageTooSmall)
}

func TestImageIntake_RejectsFormatAndSize(t *testing.T) {
	in := NewImageIntake(100, 1024)

	_, _, err := in.Check(nil)
	require.ErrorIs(t, err, ErrEmptyImage)

	_, _, err = in.Check([]byte("not an image"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	var buf bytes.Buffer
	pal := image.NewPaletted(image.Rect(0, 0, 200, 200), color.Palette{color.Black, color.White})
	require.NoError(t, gif.Encode(&buf, pal, nil))
	_, format, err := NewImageIntake(100, 0).Check(buf.Bytes())
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	require.Equal(t, "gif", format)

	_, _, err = in.Check(encodedPNG(t, 2000, 2000))
	require.ErrorIs(t, err, ErrImageTooLarge)

	require.ErrorIs(t, in.CheckSize(2048), ErrImageTooLarge)
	require.NoError(t, in.CheckSize(1024))
}
