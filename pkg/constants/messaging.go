// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

package constants

// NATS subjects served by the share API
const (
	ShareCreateSubject = "content.share.create"
	ShareClaimSubject  = "content.share.claim"
	ShareListSubject   = "content.share.list"
	ShareDeleteSubject = "content.share.delete"

	// CleanupRunSubject triggers one cleanup run; the reply carries the
	// processed count.
	CleanupRunSubject = "content.share.cleanup"
)

// ShareQueue is the queue group shared by all service replicas.
const ShareQueue = "content-share.queue"

// Reply prefixes for NATS request/reply responses
const (
	ReplyOKPrefix    = "OK"
	ReplyErrorPrefix = "ERROR"
)
