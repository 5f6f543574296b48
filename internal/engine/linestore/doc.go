// Package linestore provides the immutable line sequence that the viewer
// displays.
//
// A Store is built once, either from a file or programmatically, and is
// never modified afterwards. It may be shared freely between readers.
//
// Columns are measured in grapheme clusters, so a line's length is the
// number of user-perceived characters it contains:
//
//	store, err := linestore.Open("notes.txt")
//	if err != nil {
//	    return err
//	}
//	n := store.LineLen(0)          // clusters in the first line
//	s := store.Slice(0, 4, 80)     // up to 80 clusters starting at column 4
package linestore
