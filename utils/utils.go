package utils

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"net/mail"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// FileValidator checks uploaded payment proofs against an extension
// allow-list, a sniffed MIME allow-list and a size bound.
type FileValidator struct {
	allowedExt  map[string]bool
	allowedMime map[string]bool
	maxSize     int64
}

// NewPaymentProofValidator builds the validator for the consultation
// upload: images (JPEG, PNG, GIF) and PDFs, 5 MB by default. The lists
// and the bound can be overridden from the environment.
func NewPaymentProofValidator() *FileValidator {
	allowedExt := map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".pdf": true,
	}
	if raw := os.Getenv("ALLOWED_FILE_EXTENSIONS"); raw != "" {
		allowedExt = make(map[string]bool)
		for _, ext := range strings.Split(raw, ",") {
			if ext = strings.TrimSpace(strings.ToLower(ext)); ext != "" {
				allowedExt[ext] = true
			}
		}
	}

	allowedMime := map[string]bool{
		"image/jpeg": true, "image/png": true, "image/gif": true,
		"application/pdf": true,
	}
	if raw := os.Getenv("ALLOWED_FILE_MIME_TYPES"); raw != "" {
		allowedMime = make(map[string]bool)
		for _, m := range strings.Split(raw, ",") {
			if m = strings.TrimSpace(strings.ToLower(m)); m != "" {
				allowedMime[m] = true
			}
		}
	}

	sizeMB := 5
	if v := os.Getenv("MAX_UPLOAD_SIZE_MB"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			sizeMB = parsed
		}
	}

	return &FileValidator{
		allowedExt:  allowedExt,
		allowedMime: allowedMime,
		maxSize:     int64(sizeMB) << 20,
	}
}

// MaxSize returns the size bound in bytes.
func (v *FileValidator) MaxSize() int64 { return v.maxSize }

// ValidateFile returns the sniffed MIME type, or an error if the file
// breaks the extension list, the MIME list or the size bound.
func (v *FileValidator) ValidateFile(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader.Size > v.maxSize {
		return "", fmt.Errorf("file too large (max %d MB)", v.maxSize>>20)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !v.allowedExt[ext] {
		return "", fmt.Errorf("invalid file extension (allowed: jpg, jpeg, png, gif, pdf)")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && n == 0 {
		return "", fmt.Errorf("failed to read file header")
	}

	detectedMime := strings.ToLower(http.DetectContentType(buffer[:n]))
	if i := strings.Index(detectedMime, ";"); i >= 0 {
		detectedMime = strings.TrimSpace(detectedMime[:i])
	}
	if !v.allowedMime[detectedMime] {
		return "", fmt.Errorf("invalid file type (allowed: JPEG, PNG, GIF, PDF)")
	}

	return detectedMime, nil
}

// ValidEmail reports whether s parses as a bare RFC 5322 address.
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// SanitizeFilename turns an uploaded filename into a safe lowercase
// ascii base name, keeping the extension.
func SanitizeFilename(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	base := strings.TrimSuffix(name, filepath.Ext(name))

	// Normalize accents
	t := norm.NFD.String(base)
	var b strings.Builder
	for _, r := range t {
		if unicode.Is(unicode.Mn, r) {
			continue // remove accent marks
		}
		b.WriteRune(r)
	}

	s := strings.ToLower(b.String())
	s = nonAlnum.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "upload"
	}

	return s + ext
}

func ParseIntDefault(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// EnvDefault returns the value of the named variable, or def when unset
// or blank.
func EnvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
