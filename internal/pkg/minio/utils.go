package minio

import (
	"fmt"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// bucketNameRegex validates bucket names according to AWS S3 rules
	bucketNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9\-]{1,61}[a-z0-9]$`)

	// invalidBucketNamePrefixes are invalid bucket name prefixes
	invalidBucketNamePrefixes = []string{"xn--", "sthree-", "sthree-configurator"}

	// invalidBucketNameSuffixes are invalid bucket name suffixes
	invalidBucketNameSuffixes = []string{"-s3alias", "--ol-s3"}
)

// ValidateBucketName validates a bucket name according to AWS S3 naming rules
func ValidateBucketName(bucketName string) error {
	if bucketName == "" {
		return fmt.Errorf("bucket name cannot be empty")
	}

	// Length check
	if len(bucketName) < 3 || len(bucketName) > 63 {
		return fmt.Errorf("bucket name must be between 3 and 63 characters long")
	}

	// Regex pattern check
	if !bucketNameRegex.MatchString(bucketName) {
		return fmt.Errorf("bucket name must start and end with a lowercase letter or number, and can only contain lowercase letters, numbers, and hyphens")
	}

	// Check for invalid prefixes
	for _, prefix := range invalidBucketNamePrefixes {
		if strings.HasPrefix(bucketName, prefix) {
			return fmt.Errorf("bucket name cannot start with '%s'", prefix)
		}
	}

	// Check for invalid suffixes
	for _, suffix := range invalidBucketNameSuffixes {
		if strings.HasSuffix(bucketName, suffix) {
			return fmt.Errorf("bucket name cannot end with '%s'", suffix)
		}
	}

	// Check for consecutive hyphens
	if strings.Contains(bucketName, "--") {
		return fmt.Errorf("bucket name cannot contain consecutive hyphens")
	}

	return nil
}

// ValidateObjectName validates an object name
func ValidateObjectName(objectName string) error {
	if objectName == "" {
		return fmt.Errorf("object name cannot be empty")
	}

	// Length check (S3 allows up to 1024 characters)
	if len(objectName) > 1024 {
		return fmt.Errorf("object name cannot exceed 1024 characters")
	}

	// Check for invalid characters (null bytes)
	if strings.Contains(objectName, "\x00") {
		return fmt.Errorf("object name cannot contain null bytes")
	}

	return nil
}

// DetectContentType detects the content type of a file based on its extension
func DetectContentType(filePath string) string {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case "":
		return "application/octet-stream"
	case ".csv":
		// mime tables differ between hosts
		return "text/csv; charset=utf-8"
	}

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		return "application/octet-stream"
	}

	return contentType
}

// SanitizeObjectName sanitizes an object name by removing invalid characters
func SanitizeObjectName(objectName string) string {
	// Replace null bytes
	objectName = strings.ReplaceAll(objectName, "\x00", "")

	// Trim leading and trailing slashes
	objectName = strings.Trim(objectName, "/")

	// Replace multiple consecutive slashes with a single slash
	for strings.Contains(objectName, "//") {
		objectName = strings.ReplaceAll(objectName, "//", "/")
	}

	return objectName
}

// GenerateObjectKey generates an object key from a file path
func GenerateObjectKey(filePath, prefix string) string {
	filename := filepath.Base(filePath)
	prefix = SanitizeObjectName(prefix)
	if prefix == "" {
		return filename
	}

	return fmt.Sprintf("%s/%s", prefix, filename)
}
