// Package workspace loads article sources from the content directory.
//
// The content tree mirrors the site's category structure:
//
//	content/
//	  programming/            category
//	    go/                   category
//	      channels/           article slug
//	        article.md        default locale
//	        article.fr.md     "fr" variant
//
// Each article directory's name is slugified; the directories above it form
// the category path.
package workspace
