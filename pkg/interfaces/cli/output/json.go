package output

import (
	"encoding/json"
	"fmt"
	"io"
)

func renderJSON(w io.Writer, result interface{}) error {
	v, ok := view(result)
	if !ok {
		return fmt.Errorf("unsupported result type %T", result)
	}

	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}
