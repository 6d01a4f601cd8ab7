package receipts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFileName(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		wantErr  bool
	}{
		{name: "jpg", fileName: "facture.jpg", wantErr: false},
		{name: "jpeg", fileName: "facture.jpeg", wantErr: false},
		{name: "png", fileName: "facture.png", wantErr: false},
		{name: "uppercase extension", fileName: "FACTURE.PNG", wantErr: false},
		{name: "mixed case", fileName: "scan.JpEg", wantErr: false},
		{name: "pdf refused", fileName: "facture.pdf", wantErr: true},
		{name: "txt refused", fileName: "test.txt", wantErr: true},
		{name: "no extension", fileName: "facture", wantErr: true},
		{name: "trailing dot", fileName: "facture.", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileName(tt.fileName)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "jpeg, jpg, png")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDetectHead(t *testing.T) {
	jpeg := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10}
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0x00}

	got, err := DetectHead(jpeg)
	require.NoError(t, err)
	assert.Equal(t, TypeJPEG, got.Type)
	assert.Equal(t, "image/jpeg", got.MIME)

	got, err = DetectHead(png)
	require.NoError(t, err)
	assert.Equal(t, TypePNG, got.Type)

	_, err = DetectHead([]byte("plain text"))
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = DetectHead(nil)
	assert.ErrorIs(t, err, ErrUnknownType)
}
