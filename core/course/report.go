package course

import (
	"net/mail"

	"github.com/sabaq/backend/core"
	"github.com/sabaq/backend/core/user"
)

const progressReportTemplate = "progress_report"

type progressReportData struct {
	CuratorName string
	Students    []StudentProgress
}

// NewProgressReportMessage emails the curator the progress of their students.
func NewProgressReportMessage(curator user.User, report []StudentProgress) *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Name: curator.Name, Address: curator.Email}},
		Subject:      "Your students' progress",
		TemplateName: progressReportTemplate,
		TemplateData: progressReportData{CuratorName: curator.Name, Students: report},
	}
}
