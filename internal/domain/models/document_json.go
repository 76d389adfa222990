package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// The wire shape of a document is a plain JSON object keyed by gallery ID,
// exactly what the admin panel keeps in its config store and what
// export/import files contain. encoding/json sorts map keys and drops the
// tab order, so the document carries its own codec.

func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, id := range d.OrderedIDs() {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(d.Galleries[id])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (d *Document) UnmarshalJSON(data []byte) error {
	d.Order = make(map[string]int)
	d.Galleries = make(map[string]*Gallery)

	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("document: expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("document: expected gallery id, got %v", keyTok)
		}

		var g Gallery
		if err := dec.Decode(&g); err != nil {
			return fmt.Errorf("document: gallery %q: %w", id, err)
		}

		d.Append(id, &g)
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}

	return nil
}
