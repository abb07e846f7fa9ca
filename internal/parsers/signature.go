package parsers

import "strings"

// SignatureSuffix marks a detached signature next to a package archive
const SignatureSuffix = ".sig"

// IsSignature returns true for detached signature files
func IsSignature(path string) bool {
	return strings.HasSuffix(path, SignatureSuffix)
}

// SignatureBase returns the path of the file a signature signs
func SignatureBase(path string) string {
	return strings.TrimSuffix(path, SignatureSuffix)
}
