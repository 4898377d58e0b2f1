package proto

import (
	"crypto/md5"
	"encoding/hex"
)

// BuildLoginRequest assembles a Login message from plaintext credentials,
// hashing the password the way the server expects (lowercase hex MD5).
func BuildLoginRequest(username, password string, clientVersion, minorVersion uint32) Login {
	sum := md5.Sum([]byte(password))
	return Login{
		Username:      username,
		PasswordMD5:   hex.EncodeToString(sum[:]),
		ClientVersion: clientVersion,
		MinorVersion:  minorVersion,
	}
}

// BuildFileSearchRequest assembles a FileSearch message for the given
// search token and free-text query.
func BuildFileSearchRequest(token uint32, text string) FileSearch {
	return FileSearch{SearchToken: token, SearchText: text}
}

// BuildTransferRequest assembles a peer TransferRequest.
func BuildTransferRequest(direction TransferDirection, token uint32, virtualPath string, fileSize uint64) TransferRequest {
	return TransferRequest{Direction: direction, Token: token, VirtualPath: virtualPath, FileSize: fileSize}
}

// BuildTransferResponse assembles a peer TransferResponse. queueOrReason
// carries a queue position description when allowed, or a denial reason
// when not; callers that have neither pass an empty string.
func BuildTransferResponse(token uint32, allowed bool, queueOrReason string) TransferResponse {
	return TransferResponse{Token: token, Allowed: allowed, QueueOrReason: queueOrReason}
}

// ParseTransferRequest decodes a peer TransferRequest payload directly,
// for callers that already know the code and want to skip the dispatch in
// DecodeMessage.
func ParseTransferRequest(payload []byte) (TransferRequest, error) {
	msg, err := DecodePeerMessage(CodeTransferRequest, payload)
	if err != nil {
		return TransferRequest{}, err
	}
	return msg.(TransferRequest), nil
}

// ParseTransferResponse decodes a peer TransferResponse payload directly.
func ParseTransferResponse(payload []byte) (TransferResponse, error) {
	msg, err := DecodePeerMessage(CodeTransferResponse, payload)
	if err != nil {
		return TransferResponse{}, err
	}
	return msg.(TransferResponse), nil
}
