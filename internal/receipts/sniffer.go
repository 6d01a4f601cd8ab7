package receipts

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Receipt files are restricted to the three formats the form accepts.
type MediaType string

const (
	TypeJPEG MediaType = "jpeg"
	TypePNG  MediaType = "png"
)

var ErrUnknownType = errors.New("unknown receipt type")

// ErrExtension is returned when the selected file name carries an
// extension outside the allowed set. The message names the allowed
// extensions so it can be surfaced inline as-is.
type ErrExtension struct {
	FileName string
}

func (e ErrExtension) Error() string {
	return fmt.Sprintf("fichier %q refusé : extensions autorisées %s", e.FileName, strings.Join(AllowedExtensions(), ", "))
}

var allowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// AllowedExtensions lists the accepted receipt extensions, sorted.
func AllowedExtensions() []string {
	out := make([]string, 0, len(allowedExtensions))
	for ext := range allowedExtensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// ValidateFileName checks the file name's extension case-insensitively
// against the allowed set. It never inspects content; rejection is a local
// validation fault the caller surfaces inline.
func ValidateFileName(fileName string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if _, ok := allowedExtensions[ext]; !ok {
		return ErrExtension{FileName: fileName}
	}
	return nil
}

type Result struct {
	Type MediaType
	MIME string
}

// DetectHead sniffs the magic bytes of an accepted file. Content detection
// backs up the extension gate; a mismatch between the two is refused before
// anything reaches the object store.
func DetectHead(head []byte) (Result, error) {
	if len(head) == 0 {
		return Result{}, ErrUnknownType
	}
	if isJPEG(head) {
		return Result{Type: TypeJPEG, MIME: "image/jpeg"}, nil
	}
	if isPNG(head) {
		return Result{Type: TypePNG, MIME: "image/png"}, nil
	}
	return Result{}, ErrUnknownType
}

func isJPEG(head []byte) bool {
	return len(head) > 3 &&
		head[0] == 0xff &&
		head[1] == 0xd8 &&
		head[2] == 0xff
}

func isPNG(head []byte) bool {
	pngMagic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	return len(head) >= len(pngMagic) && bytes.Equal(head[:len(pngMagic)], pngMagic)
}
