package proto

import "fmt"

// UnsupportedCodeError is returned when a wire code has no known payload
// shape in either message family.
type UnsupportedCodeError struct {
	Code       uint32
	PayloadLen int
}

func (e *UnsupportedCodeError) Error() string {
	return fmt.Sprintf("proto: unsupported message code %d (payload len %d)", e.Code, e.PayloadLen)
}

// EncodeServerMessage renders a ServerMessage to (code, payload) ready for
// wire.Frame construction.
func EncodeServerMessage(msg ServerMessage) (uint32, []byte, error) {
	w := NewWriter()
	switch m := msg.(type) {
	case Login:
		w.WriteString(m.Username)
		w.WriteString(m.PasswordMD5)
		w.WriteU32(m.ClientVersion)
		w.WriteU32(m.MinorVersion)
		return CodeLogin, w.Bytes(), nil
	case SetWaitPort:
		w.WriteU32(m.ListenPort)
		return CodeSetWaitPort, w.Bytes(), nil
	case GetPeerAddress:
		w.WriteString(m.Username)
		return CodeGetPeerAddress, w.Bytes(), nil
	case GetUserStatus:
		w.WriteString(m.Username)
		return CodeGetUserStatus, w.Bytes(), nil
	case ConnectToPeer:
		w.WriteString(m.Username)
		w.WriteU32(m.Token)
		return CodeConnectToPeer, w.Bytes(), nil
	case MessageUser:
		w.WriteString(m.Username)
		w.WriteString(m.Message)
		return CodeMessageUser, w.Bytes(), nil
	case MessageAcked:
		w.WriteU32(m.MessageID)
		return CodeMessageAcked, w.Bytes(), nil
	case FileSearch:
		w.WriteU32(m.SearchToken)
		w.WriteString(m.SearchText)
		return CodeFileSearch, w.Bytes(), nil
	case DownloadSpeed:
		w.WriteU32(m.BytesPerSec)
		return CodeDownloadSpeed, w.Bytes(), nil
	case UploadSpeed:
		w.WriteU32(m.BytesPerSec)
		return CodeUploadSpeed, w.Bytes(), nil
	case SharedFoldersFiles:
		w.WriteU32(m.FolderCount)
		w.WriteU32(m.FileCount)
		return CodeSharedFoldersFiles, w.Bytes(), nil
	case GetUserStats:
		w.WriteString(m.Username)
		return CodeGetUserStats, w.Bytes(), nil
	case SearchUserFiles:
		w.WriteString(m.Username)
		w.WriteString(m.SearchText)
		return CodeSearchUserFiles, w.Bytes(), nil
	case ExactFileSearch:
		w.WriteString(m.VirtualPath)
		return CodeExactFileSearch, w.Bytes(), nil
	case SearchRoom:
		w.WriteString(m.Room)
		w.WriteString(m.SearchText)
		return CodeSearchRoom, w.Bytes(), nil
	case UserJoinedRoom:
		w.WriteString(m.Room)
		w.WriteString(m.Username)
		return CodeUserJoinedRoom, w.Bytes(), nil
	case GetRecommendations:
		w.WriteU32(uint32(len(m.Terms)))
		for _, t := range m.Terms {
			w.WriteString(t.Term)
			w.WriteU32(t.Score)
		}
		return CodeGetRecommendations, w.Bytes(), nil
	default:
		return 0, nil, fmt.Errorf("proto: unknown server message type %T", msg)
	}
}

// DecodeServerMessage parses a payload for a known server wire code. It
// returns UnsupportedCodeError for any code not in the server vocabulary,
// letting callers fall back to peer decoding (spec.md §4.B dispatch order:
// server vocabulary is tried first, peer vocabulary only on unknown code).
func DecodeServerMessage(code uint32, payload []byte) (ServerMessage, error) {
	r := NewReader(payload)
	switch code {
	case CodeLogin:
		username, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		password, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		clientVersion, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		minorVersion, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		if err := r.EnsureConsumed(); err != nil {
			return nil, err
		}
		return Login{Username: username, PasswordMD5: password, ClientVersion: clientVersion, MinorVersion: minorVersion}, nil

	case CodeSetWaitPort:
		port, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		if err := r.EnsureConsumed(); err != nil {
			return nil, err
		}
		return SetWaitPort{ListenPort: port}, nil

	case CodeGetPeerAddress:
		username, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		if err := r.EnsureConsumed(); err != nil {
			return nil, err
		}
		return GetPeerAddress{Username: username}, nil

	case CodeGetUserStatus:
		username, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		if err := r.EnsureConsumed(); err != nil {
			return nil, err
		}
		return GetUserStatus{Username: username}, nil

	case CodeConnectToPeer:
		username, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		token, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		if err := r.EnsureConsumed(); err != nil {
			return nil, err
		}
		return ConnectToPeer{Username: username, Token: token}, nil

	case CodeMessageUser:
		username, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		message, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		if err := r.EnsureConsumed(); err != nil {
			return nil, err
		}
		return MessageUser{Username: username, Message: message}, nil

	case CodeMessageAcked:
		id, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		if err := r.EnsureConsumed(); err != nil {
			return nil, err
		}
		return MessageAcked{MessageID: id}, nil

	case CodeFileSearch:
		token, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		text, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		if err := r.EnsureConsumed(); err != nil {
			return nil, err
		}
		return FileSearch{SearchToken: token, SearchText: text}, nil

	case CodeDownloadSpeed:
		v, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		if err := r.EnsureConsumed(); err != nil {
			return nil, err
		}
		return DownloadSpeed{BytesPerSec: v}, nil

	case CodeUploadSpeed:
		v, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		if err := r.EnsureConsumed(); err != nil {
			return nil, err
		}
		return UploadSpeed{BytesPerSec: v}, nil

	case CodeSharedFoldersFiles:
		folders, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		files, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		if err := r.EnsureConsumed(); err != nil {
			return nil, err
		}
		return SharedFoldersFiles{FolderCount: folders, FileCount: files}, nil

	case CodeGetUserStats:
		username, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		if err := r.EnsureConsumed(); err != nil {
			return nil, err
		}
		return GetUserStats{Username: username}, nil

	case CodeSearchUserFiles:
		username, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		text, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		if err := r.EnsureConsumed(); err != nil {
			return nil, err
		}
		return SearchUserFiles{Username: username, SearchText: text}, nil

	case CodeExactFileSearch:
		path, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		if err := r.EnsureConsumed(); err != nil {
			return nil, err
		}
		return ExactFileSearch{VirtualPath: path}, nil

	case CodeSearchRoom:
		room, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		text, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		if err := r.EnsureConsumed(); err != nil {
			return nil, err
		}
		return SearchRoom{Room: room, SearchText: text}, nil

	case CodeUserJoinedRoom:
		room, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		username, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		if err := r.EnsureConsumed(); err != nil {
			return nil, err
		}
		return UserJoinedRoom{Room: room, Username: username}, nil

	case CodeGetRecommendations:
		count, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		terms := make([]RecommendationTerm, 0, count)
		for i := uint32(0); i < count; i++ {
			term, err := r.ReadString()
			if err != nil {
				return nil, err
			}
			score, err := r.ReadU32()
			if err != nil {
				return nil, err
			}
			terms = append(terms, RecommendationTerm{Term: term, Score: score})
		}
		if err := r.EnsureConsumed(); err != nil {
			return nil, err
		}
		return GetRecommendations{Terms: terms}, nil

	default:
		return nil, &UnsupportedCodeError{Code: code, PayloadLen: len(payload)}
	}
}
