// Package themes provides the built-in html/template themes: the embedded
// "minimal" theme and directory themes loaded from disk.
//
// Templates are parsed against a fixed set of pure functions. A template that
// calls anything else fails to parse, which the theme host reports as a link
// error before any page is rendered.
package themes
