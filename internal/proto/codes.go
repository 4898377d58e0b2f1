package proto

// Server message codes (central-server vocabulary).
const (
	CodeLogin              uint32 = 1
	CodeSetWaitPort        uint32 = 2
	CodeGetPeerAddress     uint32 = 3
	CodeGetUserStatus      uint32 = 7
	CodeUserJoinedRoom     uint32 = 16
	CodeConnectToPeer      uint32 = 18
	CodeMessageUser        uint32 = 22
	CodeMessageAcked       uint32 = 23
	CodeFileSearch         uint32 = 26
	CodeDownloadSpeed      uint32 = 34
	CodeSharedFoldersFiles uint32 = 35
	CodeGetUserStats       uint32 = 36
	CodeSearchUserFiles    uint32 = 42
	CodeExactFileSearch    uint32 = 65
	CodeGetRecommendations uint32 = 110
	CodeSearchRoom         uint32 = 120
	CodeUploadSpeed        uint32 = 121
)

// Peer message codes (direct peer-to-peer vocabulary).
const (
	CodeGetSharedFileList uint32 = 4
	CodeSharedFileList    uint32 = 5
	CodeFileSearchRequest uint32 = 8
	CodeFileSearchResult  uint32 = 9
	CodeTransferRequest   uint32 = 40
	CodeTransferResponse  uint32 = 41
	CodeQueueUpload       uint32 = 43
	CodeUploadPlaceInLine uint32 = 44
	CodeUploadFailed      uint32 = 46
	CodeUploadDenied      uint32 = 50
)
