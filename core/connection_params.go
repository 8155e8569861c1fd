package core

import "encoding/json"

type ConnectionParams struct {
	ID   ConnectionID
	Name string
	Type string
	URL  string
}

// Expand returns a copy of the original parameters with expanded fields
func (p *ConnectionParams) Expand() *ConnectionParams {
	return &ConnectionParams{
		ID:   ConnectionID(expandOrDefault(string(p.ID))),
		Name: expandOrDefault(p.Name),
		Type: expandOrDefault(p.Type),
		URL:  expandOrDefault(p.URL),
	}
}

func (p *ConnectionParams) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Type string `json:"type"`
		URL  string `json:"url"`
	}{
		ID:   string(p.ID),
		Name: p.Name,
		Type: p.Type,
		URL:  p.URL,
	})
}

func (p *ConnectionParams) UnmarshalJSON(data []byte) error {
	var alias struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Type string `json:"type"`
		URL  string `json:"url"`
	}

	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	*p = ConnectionParams{
		ID:   ConnectionID(alias.ID),
		Name: alias.Name,
		Type: alias.Type,
		URL:  alias.URL,
	}

	return nil
}
