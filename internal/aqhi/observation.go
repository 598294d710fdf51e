package aqhi

import "fmt"

const observationDocument = "observation"

// ParseObservation reads metadata and current conditions into snap.
// A condition missing from the document keeps a nil Value.
func ParseObservation(raw []byte, lang Language, snap *Snapshot) error {
	if !lang.Supported() {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}

	text, err := decodeUTF8BOM(raw)
	if err != nil {
		return &ParseError{Document: observationDocument, Err: err}
	}

	root, err := parseTree(text)
	if err != nil {
		return &ParseError{Document: observationDocument, Err: err}
	}

	timestamp, ok := root.findText(timestampPath)
	if !ok {
		return &ParseError{Document: observationDocument, Err: fmt.Errorf("missing %s", timestampPath)}
	}
	location, ok := root.findText(locationPath)
	if !ok {
		return &ParseError{Document: observationDocument, Err: fmt.Errorf("missing %s", locationPath)}
	}
	snap.Metadata = Metadata{Timestamp: timestamp, Location: location}

	if snap.Conditions == nil {
		snap.Conditions = make(map[string]Condition, len(conditionsMeta))
	}
	for key, meta := range conditionsMeta {
		condition := Condition{Label: meta.labels[lang]}
		if value, ok := root.findText(meta.path); ok {
			condition.Value = &value
		}
		snap.Conditions[key] = condition
	}

	return nil
}
