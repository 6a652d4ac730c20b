package id3tag

import "bytes"

// TagContent is the decoded value of a frame as the typed frame wrappers
// see it. Fields a frame does not use are left at their zero value.
//
// For a comment frame, Type holds the language, Description the short
// description and Text the comment itself. Binary frames only use Binary.
type TagContent struct {
	Type          string
	TextSubtype   string
	BinarySubtype []byte
	Description   string
	Text          string
	Binary        []byte
}

// Empty reports whether no field is set.
func (c TagContent) Empty() bool {
	return c.Type == "" &&
		c.TextSubtype == "" &&
		len(c.BinarySubtype) == 0 &&
		c.Description == "" &&
		c.Text == "" &&
		len(c.Binary) == 0
}

// Equal reports whether both values carry the same fields.
func (c TagContent) Equal(o TagContent) bool {
	return c.Type == o.Type &&
		c.TextSubtype == o.TextSubtype &&
		bytes.Equal(c.BinarySubtype, o.BinarySubtype) &&
		c.Description == o.Description &&
		c.Text == o.Text &&
		bytes.Equal(c.Binary, o.Binary)
}
