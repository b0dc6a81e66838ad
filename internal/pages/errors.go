package pages

import (
	"git.home.luguber.info/inful/pagetree/internal/foundation/errors"
)

var (
	// ErrUnknownSite is returned for a site missing from the configuration.
	ErrUnknownSite = errors.NotFoundError("unknown site").Build()

	// ErrUnknownLanguage is returned for a language the site does not declare.
	ErrUnknownLanguage = errors.ValidationError("language not configured for site").Build()

	// ErrVersionExists is returned by CreateVersion when the page already has
	// a version in the language.
	ErrVersionExists = errors.AlreadyExistsError("page already has a version in language").Build()

	// ErrTitleRequired is returned when a version is created without a title.
	ErrTitleRequired = errors.ValidationError("title is required").Build()

	// ErrInvalidOverwrite is returned for an empty or malformed URL overwrite.
	ErrInvalidOverwrite = errors.ValidationError("invalid url overwrite").Build()

	// ErrPageNotFound is returned by ResolvePath when no published page
	// answers the path.
	ErrPageNotFound = errors.NotFoundError("no published page at path").Build()
)
