// Package textutil provides filename sanitization helpers.
//
// SafeName converts arbitrary feed and episode titles into stable,
// filesystem-safe path segments; names over the length limit keep a prefix
// plus a short hash so distinct titles never collide after truncation.
package textutil
