package dto

import "encoding/json"

// FlexString accepts a JSON string or a one-element JSON array of
// strings. Some front-end variants post duplicated fields, which
// serialize as arrays; we normalize by taking the first element.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	if len(list) > 0 {
		*f = FlexString(list[0])
	} else {
		*f = ""
	}
	return nil
}

func (f FlexString) String() string { return string(f) }

// SendEmailDTO is the JSON body accepted by POST /api/send-email.
// Multipart and url-encoded posts carry the same field names as form
// values instead.
type SendEmailDTO struct {
	FullName         FlexString `json:"fullName"`
	Name             FlexString `json:"name"`
	Surname          FlexString `json:"surname"`
	Email            FlexString `json:"email"`
	Phone            FlexString `json:"phone"`
	Message          FlexString `json:"message"`
	Concern          FlexString `json:"concern"`
	ConsultationType FlexString `json:"consultationType"`
	Type             FlexString `json:"type"`
}
