package auth

// Permission keys consumed by the reporting application. The catalog is
// seeded at migration time; roles reference it through role_permissions.
const (
	PermReportSubmit  = "report.submit"
	PermReportReview  = "report.review"
	PermContractRead  = "contract.read"
	PermInboxSend     = "inbox.send"
	PermMitraManage   = "mitra.manage"
	PermAccountVerify = "account.verify"
)

var BuiltinPermissions = []Permission{
	{Key: PermReportSubmit, Description: "Submit daily field reports"},
	{Key: PermReportReview, Description: "Review and approve submitted reports"},
	{Key: PermContractRead, Description: "Read contract details"},
	{Key: PermInboxSend, Description: "Send inbox messages"},
	{Key: PermMitraManage, Description: "Manage partner organizations"},
	{Key: PermAccountVerify, Description: "Verify partner accounts"},
}
