package mock

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sitekit/mailrelay/internal/models"
)

// StoredAttachment is an attachment held by the mock provider. FailStatus,
// when non-zero, makes the content endpoint answer with that HTTP status so
// download-failure handling can be exercised end to end.
type StoredAttachment struct {
	Ref        models.AttachmentRef
	Content    []byte
	FailStatus int
}

// StoredEmail is a message held by the mock provider.
type StoredEmail struct {
	Message     models.FetchedMessage
	Attachments []StoredAttachment
	ReceivedAt  time.Time
}

var (
	emailStore      map[string]*StoredEmail
	attachmentIndex map[string]*StoredAttachment // attachment id -> attachment
	sentStore       []models.ForwardedEnvelope
	storeMutex      sync.RWMutex
)

func init() {
	emailStore = make(map[string]*StoredEmail)
	attachmentIndex = make(map[string]*StoredAttachment)
}

// SeedEmail stores a message and its attachments, assigning ids, and returns
// the email id. baseURL is used to build each attachment's download URL.
func SeedEmail(baseURL string, msg models.FetchedMessage, attachments []StoredAttachment) string {
	storeMutex.Lock()
	defer storeMutex.Unlock()

	emailID := fmt.Sprintf("em_%s", uuid.New().String())
	msg.ID = emailID

	stored := &StoredEmail{
		Message:     msg,
		Attachments: make([]StoredAttachment, len(attachments)),
		ReceivedAt:  time.Now(),
	}
	copy(stored.Attachments, attachments)
	for i := range stored.Attachments {
		attID := fmt.Sprintf("att_%s", uuid.New().String())
		stored.Attachments[i].Ref.ID = attID
		stored.Attachments[i].Ref.DownloadURL = fmt.Sprintf("%s/attachments/%s/content", baseURL, attID)
		attachmentIndex[attID] = &stored.Attachments[i]
	}

	emailStore[emailID] = stored
	return emailID
}

// GetEmail returns the stored message for an id.
func GetEmail(emailID string) (*models.FetchedMessage, bool) {
	storeMutex.RLock()
	defer storeMutex.RUnlock()

	stored, ok := emailStore[emailID]
	if !ok {
		return nil, false
	}
	msg := stored.Message
	return &msg, true
}

// ListAttachments returns the attachment references for an email id.
func ListAttachments(emailID string) ([]models.AttachmentRef, bool) {
	storeMutex.RLock()
	defer storeMutex.RUnlock()

	stored, ok := emailStore[emailID]
	if !ok {
		return nil, false
	}
	refs := make([]models.AttachmentRef, 0, len(stored.Attachments))
	for _, att := range stored.Attachments {
		refs = append(refs, att.Ref)
	}
	return refs, true
}

// GetAttachment returns a stored attachment by id.
func GetAttachment(attachmentID string) (*StoredAttachment, bool) {
	storeMutex.RLock()
	defer storeMutex.RUnlock()

	att, ok := attachmentIndex[attachmentID]
	return att, ok
}

// RecordSent captures an outbound send and returns the assigned id.
func RecordSent(envelope models.ForwardedEnvelope) string {
	storeMutex.Lock()
	defer storeMutex.Unlock()

	sentStore = append(sentStore, envelope)
	return fmt.Sprintf("sent_%s", uuid.New().String())
}

// Sent returns a copy of every captured outbound send.
func Sent() []models.ForwardedEnvelope {
	storeMutex.RLock()
	defer storeMutex.RUnlock()

	out := make([]models.ForwardedEnvelope, len(sentStore))
	copy(out, sentStore)
	return out
}
