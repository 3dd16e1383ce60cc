package service_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/rendezvous/common/id"
	"basegraph.app/rendezvous/internal/domain"
	"basegraph.app/rendezvous/internal/model"
	"basegraph.app/rendezvous/internal/service"
)

var _ = Describe("Event payloads", func() {
	It("encodes meeting-invited ids as strings", func() {
		p := service.MeetingInvitedPayload{MeetingID: id.New(), InvitationID: id.New(), NotificationID: id.New(), HostID: id.New()}

		raw, err := json.Marshal(p)
		Expect(err).NotTo(HaveOccurred())

		var decoded service.MeetingInvitedPayload
		Expect(json.Unmarshal(raw, &decoded)).To(Succeed())
		Expect(decoded.InvitationID).To(Equal(p.InvitationID))

		var body map[string]any
		Expect(json.Unmarshal(raw, &body)).To(Succeed())
		for _, key := range []string{"meeting_id", "invitation_id", "notification_id", "host_id"} {
			Expect(body[key]).To(BeAssignableToTypeOf(""), key)
		}
	})

	It("encodes invite-status-changed ids as strings", func() {
		p := service.InviteStatusChangedPayload{
			InvitationID: 2112149377194659841,
			MeetingID:    2112149377194659840,
			InviteeID:    7,
			Status:       model.InvitationStatusAccepted,
			Origin:       domain.OriginRemoteReconciliation,
		}

		raw, err := json.Marshal(p)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(ContainSubstring(`"invitation_id":"2112149377194659841"`))
		Expect(string(raw)).To(ContainSubstring(`"meeting_id":"2112149377194659840"`))
		Expect(string(raw)).To(ContainSubstring(`"invitee_id":"7"`))
	})
})
