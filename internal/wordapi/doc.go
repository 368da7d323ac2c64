// Package wordapi implements a fizzbuzz.TokenSource backed by a remote word
// service that answers GET requests with a JSON object of the form
//
//	{"word": "Poem", "number": 7}
//
// Each requested token costs one round-trip. Requests run sequentially and
// are paced by a token-bucket limiter; a failed request is recorded and the
// next one proceeds, so callers always receive whatever succeeded.
package wordapi
