package proto

// ServerMessage is implemented by every central-server message payload. The
// family is closed: decode_server_message only ever returns one of the
// concrete types in this file, dispatched by a switch over the wire code —
// no reflection.
type ServerMessage interface {
	isServerMessage()
}

// PeerMessage is implemented by every direct peer-to-peer message payload.
type PeerMessage interface {
	isPeerMessage()
}

// TransferDirection distinguishes a download request from an upload
// request on the wire (encoded as u32: 0 = Download, 1 = Upload).
type TransferDirection uint32

const (
	Download TransferDirection = 0
	Upload   TransferDirection = 1
)

// Login is the first message sent on a server connection.
type Login struct {
	Username      string
	PasswordMD5   string
	ClientVersion uint32
	MinorVersion  uint32
}

// SetWaitPort tells the server which port this client listens on for
// incoming peer connections.
type SetWaitPort struct {
	ListenPort uint32
}

// GetPeerAddress asks the server for a user's current IP/port.
type GetPeerAddress struct {
	Username string
}

// GetUserStatus asks the server for a user's online status.
type GetUserStatus struct {
	Username string
}

// ConnectToPeer is sent by the server to ask this client to dial a peer, or
// by this client to ask the server to relay a connection request.
type ConnectToPeer struct {
	Username string
	Token    uint32
}

// MessageUser sends a private chat message to a user.
type MessageUser struct {
	Username string
	Message  string
}

// MessageAcked acknowledges receipt of a private message by ID.
type MessageAcked struct {
	MessageID uint32
}

// FileSearch starts a network-wide distributed search.
type FileSearch struct {
	SearchToken uint32
	SearchText  string
}

// DownloadSpeed reports this client's observed download throughput.
type DownloadSpeed struct {
	BytesPerSec uint32
}

// UploadSpeed reports this client's observed upload throughput.
type UploadSpeed struct {
	BytesPerSec uint32
}

// SharedFoldersFiles announces the counts of shared folders and files.
type SharedFoldersFiles struct {
	FolderCount uint32
	FileCount   uint32
}

// GetUserStats asks the server for a user's shared-file statistics.
type GetUserStats struct {
	Username string
}

// SearchUserFiles searches a specific user's shared files.
type SearchUserFiles struct {
	Username   string
	SearchText string
}

// ExactFileSearch searches for an exact virtual path across the network.
type ExactFileSearch struct {
	VirtualPath string
}

// SearchRoom searches within a chat room's membership.
type SearchRoom struct {
	Room       string
	SearchText string
}

// UserJoinedRoom is a read-only presence notification recognized for
// capture comparison; re-encoding it byte-exact is out of scope (spec.md §9
// Open Questions — payload shape varies across server versions).
type UserJoinedRoom struct {
	Room     string
	Username string
}

// GetRecommendations is a read-only, best-effort decode of the
// recommendations list recognized for capture comparison. Its shape is not
// guaranteed stable across server versions; decoding requires every (term,
// score) pair to parse and the payload to be fully consumed, so a payload of
// any other shape fails to decode.
type GetRecommendations struct {
	Terms []RecommendationTerm
}

// RecommendationTerm is one (term, score) pair within GetRecommendations.
type RecommendationTerm struct {
	Term  string
	Score uint32
}

func (Login) isServerMessage()              {}
func (SetWaitPort) isServerMessage()        {}
func (GetPeerAddress) isServerMessage()     {}
func (GetUserStatus) isServerMessage()      {}
func (ConnectToPeer) isServerMessage()      {}
func (MessageUser) isServerMessage()        {}
func (MessageAcked) isServerMessage()       {}
func (FileSearch) isServerMessage()         {}
func (DownloadSpeed) isServerMessage()      {}
func (UploadSpeed) isServerMessage()        {}
func (SharedFoldersFiles) isServerMessage() {}
func (GetUserStats) isServerMessage()       {}
func (SearchUserFiles) isServerMessage()    {}
func (ExactFileSearch) isServerMessage()    {}
func (SearchRoom) isServerMessage()         {}
func (UserJoinedRoom) isServerMessage()     {}
func (GetRecommendations) isServerMessage() {}

// GetSharedFileList asks a peer for its full shared-file listing.
type GetSharedFileList struct {
	Username string
}

// SharedFileEntry is one file within a SharedFileList.
type SharedFileEntry struct {
	VirtualPath string
	Size        uint64
}

// SharedFileList is a peer's reply to GetSharedFileList.
type SharedFileList struct {
	Entries []SharedFileEntry
}

// FileSearchRequest is a distributed search forwarded to a peer.
type FileSearchRequest struct {
	Token uint32
	Query string
}

// FileSearchResult is a peer's summary reply to a FileSearchRequest: a
// username and how many matching files it holds. Per-file detail (name,
// size) for the matched entries is carried in SharedFileList-shaped data
// the orchestrator fetches separately; this summary is what the server
// search fan-in observes on the wire.
type FileSearchResult struct {
	Token       uint32
	Username    string
	ResultCount uint32
}

// TransferRequest initiates a file transfer between two peers.
type TransferRequest struct {
	Direction   TransferDirection
	Token       uint32
	VirtualPath string
	FileSize    uint64
}

// TransferResponse answers a TransferRequest.
type TransferResponse struct {
	Token         uint32
	Allowed       bool
	QueueOrReason string
}

// QueueUpload asks a peer to queue a file for upload.
type QueueUpload struct {
	Username    string
	VirtualPath string
}

// UploadPlaceInLine reports a queued upload's position.
type UploadPlaceInLine struct {
	Username    string
	VirtualPath string
	Place       uint32
}

// UploadFailed reports that an upload attempt failed.
type UploadFailed struct {
	Username    string
	VirtualPath string
	Reason      string
}

// UploadDenied reports that an upload was denied outright.
type UploadDenied struct {
	Username    string
	VirtualPath string
	Reason      string
}

func (GetSharedFileList) isPeerMessage() {}
func (SharedFileList) isPeerMessage()    {}
func (FileSearchRequest) isPeerMessage() {}
func (FileSearchResult) isPeerMessage()  {}
func (TransferRequest) isPeerMessage()   {}
func (TransferResponse) isPeerMessage()  {}
func (QueueUpload) isPeerMessage()       {}
func (UploadPlaceInLine) isPeerMessage() {}
func (UploadFailed) isPeerMessage()      {}
func (UploadDenied) isPeerMessage()      {}
