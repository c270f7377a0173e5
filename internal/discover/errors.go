package discover

import "fmt"

// DirNotFoundError indicates the previews directory does not exist.
type DirNotFoundError struct {
	Path string
}

func (e *DirNotFoundError) Error() string {
	return fmt.Sprintf("previews directory not found: %s", e.Path)
}

// ManifestError indicates a preview manifest could not be read or parsed.
type ManifestError struct {
	Path string
	Err  error
}

func (e *ManifestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid preview manifest at %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("invalid preview manifest at %s", e.Path)
}

func (e *ManifestError) Unwrap() error {
	return e.Err
}

// ParseError indicates a source file could not be parsed for exports.
type ParseError struct {
	Path     string
	Language string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s source %s: %v", e.Language, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
