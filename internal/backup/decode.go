package backup

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/plantbygpt/plantbygpt/internal/model"
)

// DecodeState parses a serialized ApplicationState, checks that plants and events are
// present as lists, and normalizes it to the current schema. The returned state is a
// fresh value; nothing else is touched.
func DecodeState(raw []byte) (*model.ApplicationState, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, NewSchemaError("no state found")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, NewSchemaError("state is not a JSON object")
	}
	for _, name := range []string{"plants", "events"} {
		v := bytes.TrimSpace(fields[name])
		if len(v) == 0 || v[0] != '[' {
			return nil, NewSchemaError(fmt.Sprintf("state is missing the %s list", name))
		}
	}

	var st model.ApplicationState
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, NewSchemaError(fmt.Sprintf("state does not match the journal schema (%v)", err))
	}
	st.Normalize()
	return &st, nil
}

// ExportJSON renders the state alone as indented JSON, for manual editing. Photos are
// not included.
func ExportJSON(st *model.ApplicationState) ([]byte, error) {
	if st == nil {
		st = model.NewState()
	}
	return json.MarshalIndent(st, "", "  ")
}

// ImportJSON is the text-only counterpart of Reader.Import: it applies the same
// validation and normalization but never touches photos.
func ImportJSON(data []byte) (*model.ApplicationState, error) {
	if !json.Valid(data) {
		return nil, NewFormatError("the text is not valid JSON", nil)
	}
	return DecodeState(data)
}
