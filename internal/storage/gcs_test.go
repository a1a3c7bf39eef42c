package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectName(t *testing.T) {
	tests := []struct {
		prefix string
		key    string
		want   string
	}{
		{"cvs", "cv-1-2.pdf", "cvs/cv-1-2.pdf"},
		{"cvs/", "cv-1-2.pdf", "cvs/cv-1-2.pdf"},
		{"/uploads/cvs/", "cv-1-2.docx", "uploads/cvs/cv-1-2.docx"},
		{"", "cv-1-2.pdf", "cv-1-2.pdf"},
		{"/", "cv-1-2.pdf", "cv-1-2.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.prefix+"|"+tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, objectName(tt.prefix, tt.key))
		})
	}
}

func TestGCSStorage_RejectsInvalidKeys(t *testing.T) {
	s := &GCSStorage{bucket: "b", prefix: "cvs"}
	ctx := context.Background()

	for _, key := range []string{"", "..", "../cv.pdf", "a/b.pdf"} {
		_, err := s.Save(ctx, key, "application/pdf", nil)
		assert.Error(t, err, "save %q", key)

		_, _, err = s.Open(ctx, key)
		assert.Error(t, err, "open %q", key)

		assert.Error(t, s.Delete(ctx, key), "delete %q", key)
	}
}

func TestNewGCSStorage_RequiresBucket(t *testing.T) {
	_, err := NewGCSStorage(context.Background(), "", "cvs", "")
	assert.Error(t, err)
}
