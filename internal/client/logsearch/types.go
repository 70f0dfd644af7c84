package logsearch

import "encoding/json"

// FlexString decodes index fields that arrive either as a bare string or as a
// single-element string array, depending on the index mapping. Empty arrays
// decode to the empty string.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}

	var arr []string
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	if len(arr) == 0 {
		*f = ""
		return nil
	}
	*f = FlexString(arr[0])
	return nil
}

// String returns the underlying value.
func (f FlexString) String() string {
	return string(f)
}

// Context is the nested event context of an action document.
type Context struct {
	OrderID       FlexString `json:"order_id"`
	Event         FlexString `json:"event"`
	BrandCategory FlexString `json:"brand_category"`
}

// Source is the indexed document body.
type Source struct {
	Timestamp string  `json:"@timestamp"`
	App       string  `json:"app"`
	Action    string  `json:"action"`
	ErrorCode string  `json:"error_code"`
	Content   string  `json:"content"`
	ID        string  `json:"id"`
	Context   Context `json:"context"`
}

// Hit is one search hit.
type Hit struct {
	DocID  string `json:"_id"`
	Source Source `json:"_source"`
}

type hitsEnvelope struct {
	Hits struct {
		Hits []Hit `json:"hits"`
	} `json:"hits"`
}

// ActionQuery filters an action-index search. Zero-valued fields are omitted
// from the query.
type ActionQuery struct {
	App       string
	Action    string
	OrderID   string
	ErrorCode string
	From      int
	Size      int
}
