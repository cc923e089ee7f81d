// Package views holds the HTML components of the dashboard.
//
// Components are written in .templ files; the *_templ.go files are generated.
package views

//go:generate templ generate
