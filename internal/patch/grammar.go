// Package patch applies the page-aware search/replace format that the model
// uses for follow-up edits to a set of HTML pages.
//
// A model response is a sequence of blocks:
//
//	<<<<<<< UPDATE_PAGE_START /about.html >>>>>>> UPDATE_PAGE_END
//	<<<<<<< SEARCH
//	<h1>Old</h1>
//	=======
//	<h1>New</h1>
//	>>>>>>> REPLACE
//
//	<<<<<<< NEW_PAGE_START /contact.html >>>>>>> NEW_PAGE_END
//	```html
//	<!DOCTYPE html>...
//	```
//
// Malformed or unmatched pieces are skipped; nothing in this package returns an
// error for bad model output.
package patch

// Delimiter tokens. The model is instructed with these exact bytes.
const (
	SearchStart = "<<<<<<< SEARCH"
	Divider     = "======="
	ReplaceEnd  = ">>>>>>> REPLACE"

	UpdatePageStart = "<<<<<<< UPDATE_PAGE_START "
	UpdatePageEnd   = " >>>>>>> UPDATE_PAGE_END"
	NewPageStart    = "<<<<<<< NEW_PAGE_START "
	NewPageEnd      = " >>>>>>> NEW_PAGE_END"
)
