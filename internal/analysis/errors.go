package analysis

import "errors"

// Analysis error taxonomy. Content errors mean the document or the model
// response carries no usable information; trying another backend on the same
// text is wasted work, so they never trigger fallback. Backend errors mean a
// particular service is unreachable right now and are fallback-eligible.
var (
	// ErrMalformedResponse: the backend output is not parseable as a JSON object.
	ErrMalformedResponse = errors.New("malformed analysis response")

	// ErrEmptyExtraction: the response parsed but every extracted field is null.
	ErrEmptyExtraction = errors.New("document contains no extractable fields")

	// ErrBackendUnavailable: network/auth/timeout/quota failure talking to one backend.
	ErrBackendUnavailable = errors.New("analysis backend unavailable")

	// ErrAllBackendsUnavailable: primary and secondary backends both failed.
	ErrAllBackendsUnavailable = errors.New("all analysis backends unavailable")
)

// IsContentError reports whether err indicates unusable document content
// rather than a service outage.
func IsContentError(err error) bool {
	return errors.Is(err, ErrMalformedResponse) || errors.Is(err, ErrEmptyExtraction)
}

// IsBackendError reports whether err indicates a (possibly transient)
// backend service failure.
func IsBackendError(err error) bool {
	return errors.Is(err, ErrBackendUnavailable) || errors.Is(err, ErrAllBackendsUnavailable)
}
