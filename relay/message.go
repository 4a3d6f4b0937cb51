package relay

import "encoding/json"

type JoinRequest struct {
	UID string `json:"uid"`
}

type ReceiverJoinRequest struct {
	UID       string `json:"uid"`
	SenderUID string `json:"sender_uid"`
}

// FileMetaRequest carries sender-defined metadata, forwarded verbatim.
type FileMetaRequest struct {
	UID      string          `json:"uid"`
	Metadata json.RawMessage `json:"metadata"`
}

type FileStartRequest struct {
	UID string `json:"uid"`
}

// FileRawRequest carries one chunk. Buffer is forwarded verbatim, typically a
// base64 string or an array of bytes.
type FileRawRequest struct {
	UID    string          `json:"uid"`
	Buffer json.RawMessage `json:"buffer"`
}
