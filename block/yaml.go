package block

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Document is the file form of a block sequence:
//
//	blocks:
//	  - id: 6f1c...
//	    body: Groceries
//	  - body: milk
//	    level: 1
type Document struct {
	Blocks []*Block `yaml:"blocks"`
}

// ReadDocument decodes a YAML block document and marks every block with
// origin.
func ReadDocument(r io.Reader, origin Origin) ([]*Block, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			// An empty file is an empty document.
			return nil, nil
		}
		return nil, errors.Wrap(err, "decoding block document")
	}
	if err := Validate(doc.Blocks); err != nil {
		return nil, err
	}
	SetOrigin(doc.Blocks, origin)
	return doc.Blocks, nil
}

// WriteDocument encodes blocks as a YAML block document.
func WriteDocument(w io.Writer, blocks []*Block) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Document{Blocks: blocks}); err != nil {
		return errors.Wrap(err, "encoding block document")
	}
	return errors.Wrap(enc.Close(), "encoding block document")
}
