package proto

import "fmt"

// EncodePeerMessage renders a PeerMessage to (code, payload).
func EncodePeerMessage(msg PeerMessage) (uint32, []byte, error) {
	w := NewWriter()
	switch m := msg.(type) {
	case GetSharedFileList:
		w.WriteString(m.Username)
		return CodeGetSharedFileList, w.Bytes(), nil
	case SharedFileList:
		w.WriteU32(uint32(len(m.Entries)))
		for _, e := range m.Entries {
			w.WriteString(e.VirtualPath)
			w.WriteU64(e.Size)
		}
		return CodeSharedFileList, w.Bytes(), nil
	case FileSearchRequest:
		w.WriteU32(m.Token)
		w.WriteString(m.Query)
		return CodeFileSearchRequest, w.Bytes(), nil
	case FileSearchResult:
		w.WriteU32(m.Token)
		w.WriteString(m.Username)
		w.WriteU32(m.ResultCount)
		return CodeFileSearchResult, w.Bytes(), nil
	case TransferRequest:
		w.WriteU32(uint32(m.Direction))
		w.WriteU32(m.Token)
		w.WriteString(m.VirtualPath)
		w.WriteU64(m.FileSize)
		return CodeTransferRequest, w.Bytes(), nil
	case TransferResponse:
		w.WriteU32(m.Token)
		w.WriteBoolU32(m.Allowed)
		w.WriteString(m.QueueOrReason)
		return CodeTransferResponse, w.Bytes(), nil
	case QueueUpload:
		w.WriteString(m.Username)
		w.WriteString(m.VirtualPath)
		return CodeQueueUpload, w.Bytes(), nil
	case UploadPlaceInLine:
		w.WriteString(m.Username)
		w.WriteString(m.VirtualPath)
		w.WriteU32(m.Place)
		return CodeUploadPlaceInLine, w.Bytes(), nil
	case UploadFailed:
		w.WriteString(m.Username)
		w.WriteString(m.VirtualPath)
		w.WriteString(m.Reason)
		return CodeUploadFailed, w.Bytes(), nil
	case UploadDenied:
		w.WriteString(m.Username)
		w.WriteString(m.VirtualPath)
		w.WriteString(m.Reason)
		return CodeUploadDenied, w.Bytes(), nil
	default:
		return 0, nil, fmt.Errorf("proto: unknown peer message type %T", msg)
	}
}

// DecodePeerMessage parses a payload for a known peer wire code.
func DecodePeerMessage(code uint32, payload []byte) (PeerMessage, error) {
	r := NewReader(payload)
	switch code {
	case CodeGetSharedFileList:
		username, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		if err := r.EnsureConsumed(); err != nil {
			return nil, err
		}
		return GetSharedFileList{Username: username}, nil

	case CodeSharedFileList:
		count, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		entries := make([]SharedFileEntry, 0, count)
		for i := uint32(0); i < count; i++ {
			path, err := r.ReadString()
			if err != nil {
				return nil, err
			}
			size, err := r.ReadU64()
			if err != nil {
				return nil, err
			}
			entries = append(entries, SharedFileEntry{VirtualPath: path, Size: size})
		}
		if err := r.EnsureConsumed(); err != nil {
			return nil, err
		}
		return SharedFileList{Entries: entries}, nil

	case CodeFileSearchRequest:
		token, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		query, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		if err := r.EnsureConsumed(); err != nil {
			return nil, err
		}
		return FileSearchRequest{Token: token, Query: query}, nil

	case CodeFileSearchResult:
		token, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		username, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		resultCount, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		if err := r.EnsureConsumed(); err != nil {
			return nil, err
		}
		return FileSearchResult{Token: token, Username: username, ResultCount: resultCount}, nil

	case CodeTransferRequest:
		direction, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		dir, err := parseTransferDirection(direction)
		if err != nil {
			return nil, err
		}
		token, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		path, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		size, err := r.ReadU64()
		if err != nil {
			return nil, err
		}
		if err := r.EnsureConsumed(); err != nil {
			return nil, err
		}
		return TransferRequest{Direction: dir, Token: token, VirtualPath: path, FileSize: size}, nil

	case CodeTransferResponse:
		token, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		allowed, err := r.ReadBoolU32()
		if err != nil {
			return nil, err
		}
		reason, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		if err := r.EnsureConsumed(); err != nil {
			return nil, err
		}
		return TransferResponse{Token: token, Allowed: allowed, QueueOrReason: reason}, nil

	case CodeQueueUpload:
		username, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		path, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		if err := r.EnsureConsumed(); err != nil {
			return nil, err
		}
		return QueueUpload{Username: username, VirtualPath: path}, nil

	case CodeUploadPlaceInLine:
		username, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		path, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		place, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		if err := r.EnsureConsumed(); err != nil {
			return nil, err
		}
		return UploadPlaceInLine{Username: username, VirtualPath: path, Place: place}, nil

	case CodeUploadFailed:
		username, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		path, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		reason, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		if err := r.EnsureConsumed(); err != nil {
			return nil, err
		}
		return UploadFailed{Username: username, VirtualPath: path, Reason: reason}, nil

	case CodeUploadDenied:
		username, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		path, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		reason, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		if err := r.EnsureConsumed(); err != nil {
			return nil, err
		}
		return UploadDenied{Username: username, VirtualPath: path, Reason: reason}, nil

	default:
		return nil, &UnsupportedCodeError{Code: code, PayloadLen: len(payload)}
	}
}

// parseTransferDirection rejects any value other than the two defined
// directions, mirroring the original's strict from_u32 validation.
func parseTransferDirection(v uint32) (TransferDirection, error) {
	switch TransferDirection(v) {
	case Download, Upload:
		return TransferDirection(v), nil
	default:
		return 0, &InvalidTransferDirectionError{Value: v}
	}
}

// InvalidTransferDirectionError is returned when a TransferRequest payload
// carries a direction value outside {0, 1}.
type InvalidTransferDirectionError struct {
	Value uint32
}

func (e *InvalidTransferDirectionError) Error() string {
	return "proto: invalid transfer direction value"
}
