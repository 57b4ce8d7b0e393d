package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrTransitionNotAllowed    = errors.New("application status transition not allowed")
	ErrRejectionReasonRequired = errors.New("rejection reason is required when rejecting an application")
	ErrUnknownDocument         = errors.New("document does not belong to this application")
	ErrConflictingDocument     = errors.New("document cannot be both approved and rejected")
)

type ReviewApplicationRequest struct {
	Decision          ReviewDecision       `json:"decision" validate:"required,enum"`
	Remarks           string               `json:"remarks" validate:"max=2000"`
	RejectionReason   string               `json:"rejectionReason" validate:"max=2000"`
	ApprovedDocuments []primitive.ObjectID `json:"approvedDocuments"`
	RejectedDocuments []primitive.ObjectID `json:"rejectedDocuments"`
	// DocumentRemarks is keyed by document id hex.
	DocumentRemarks map[string]string `json:"documentRemarks"`
}

// ApplicationEvent is emitted after a review changes an application's status.
type ApplicationEvent struct {
	Type            NotificationType   `json:"type"`
	ApplicationID   primitive.ObjectID `json:"applicationId"`
	ApplicantID     primitive.ObjectID `json:"applicantId"`
	Role            VendorRole         `json:"role"`
	Decision        ReviewDecision     `json:"decision"`
	Status          ApplicationStatus  `json:"status"`
	Remarks         string             `json:"remarks,omitempty"`
	RejectionReason string             `json:"rejectionReason,omitempty"`
	ReviewedBy      primitive.ObjectID `json:"reviewedBy"`
	OccurredAt      time.Time          `json:"occurredAt"`
}

// ApplyReview mutates profile according to req and returns the event to emit.
// profile is left untouched when an error is returned.
func ApplyReview(profile *VendorProfile, req ReviewApplicationRequest, reviewer primitive.ObjectID, now time.Time) (*ApplicationEvent, error) {
	if !req.Decision.IsValid() {
		return nil, fmt.Errorf("invalid review decision: %q", req.Decision)
	}

	from := profile.Status
	to := req.Decision.TargetStatus()
	if !CanTransition(from, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, from, to)
	}

	reason := strings.TrimSpace(req.RejectionReason)
	if req.Decision == DecisionReject && reason == "" {
		return nil, ErrRejectionReasonRequired
	}

	decisions := make(map[primitive.ObjectID]bool, len(req.ApprovedDocuments)+len(req.RejectedDocuments))
	for _, id := range req.ApprovedDocuments {
		decisions[id] = true
	}
	for _, id := range req.RejectedDocuments {
		if approved, seen := decisions[id]; seen && approved {
			return nil, fmt.Errorf("%w: %s", ErrConflictingDocument, id.Hex())
		}
		decisions[id] = false
	}
	for id := range decisions {
		if profile.FindDocument(id) < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDocument, id.Hex())
		}
	}
	for key := range req.DocumentRemarks {
		id, err := primitive.ObjectIDFromHex(key)
		if err != nil || profile.FindDocument(id) < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDocument, key)
		}
	}

	approvedNames, rejectedNames := []string{}, []string{}
	for i := range profile.Documents {
		doc := &profile.Documents[i]
		if approved, ok := decisions[doc.ID]; ok {
			v := approved
			doc.IsApproved = &v
			if approved {
				approvedNames = append(approvedNames, doc.Name)
			} else {
				rejectedNames = append(rejectedNames, doc.Name)
			}
		}
		if remark, ok := req.DocumentRemarks[doc.ID.Hex()]; ok {
			doc.AdminRemarks = remark
		}
	}

	profile.AdminReview = &AdminReview{
		ReviewedBy:        reviewer,
		ReviewedAt:        now,
		Decision:          req.Decision,
		Remarks:           req.Remarks,
		RejectionReason:   reason,
		ApprovedDocuments: nonNilIDs(req.ApprovedDocuments),
		RejectedDocuments: nonNilIDs(req.RejectedDocuments),

		ApprovedDocumentNames: approvedNames,
		RejectedDocumentNames: rejectedNames,
	}
	profile.Status = to
	profile.UpdatedAt = now

	switch to {
	case ApplicationApproved:
		profile.ApprovedAt = &now
		profile.SuspendedAt = nil
		profile.IsAvailable = true
	case ApplicationRejected:
		profile.RejectedAt = &now
		profile.IsAvailable = false
	case ApplicationSuspended:
		profile.SuspendedAt = &now
		profile.IsAvailable = false
	}

	return &ApplicationEvent{
		Type:            eventTypeFor(to),
		ApplicationID:   profile.ID,
		ApplicantID:     profile.UserID,
		Role:            profile.Role,
		Decision:        req.Decision,
		Status:          to,
		Remarks:         req.Remarks,
		RejectionReason: reason,
		ReviewedBy:      reviewer,
		OccurredAt:      now,
	}, nil
}

func eventTypeFor(status ApplicationStatus) NotificationType {
	switch status {
	case ApplicationApproved:
		return NotificationApplicationApproved
	case ApplicationRejected:
		return NotificationApplicationRejected
	case ApplicationSuspended:
		return NotificationApplicationSuspended
	case ApplicationUnderReview:
		return NotificationApplicationUnderReview
	default:
		return NotificationApplicationSubmitted
	}
}

func nonNilIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return []primitive.ObjectID{}
	}
	return ids
}
