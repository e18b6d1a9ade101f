package page

import (
	ferrors "git.home.luguber.info/inful/docpage/internal/foundation/errors"
)

// ErrMissingSourceFile matches (via errors.Is) the error Build returns when a
// declared source or Markdown file cannot be read.
var ErrMissingSourceFile = ferrors.FileSystemError("missing source file").Fatal().Build()

// ErrInvalidSpec matches errors for specs that cannot be assembled at all,
// such as an entry of an unknown type.
var ErrInvalidSpec = ferrors.PageError("invalid page spec").Build()

func missingSourceFile(page, path string, cause error) error {
	return ferrors.WrapError(cause, ferrors.CategoryFileSystem, ErrMissingSourceFile.Message()).
		Fatal().
		WithContext("page", page).
		WithContext("path", path).
		Build()
}

func invalidSpec(page, reason string) error {
	return ferrors.NewError(ferrors.CategoryPage, ErrInvalidSpec.Message()).
		Fatal().
		WithContext("page", page).
		WithContext("reason", reason).
		Build()
}
