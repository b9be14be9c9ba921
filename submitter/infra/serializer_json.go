package infra

import "encoding/json"

// JSONSerializer usa encoding/json; datas de domain.Document já saem como yyyy-MM-dd.
type JSONSerializer struct{}

func (JSONSerializer) Serialize(v any) ([]byte, error) {
	return json.Marshal(v)
}
