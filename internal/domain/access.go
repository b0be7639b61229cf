package domain

// AccessReason why a download was granted or denied
type AccessReason string

const (
	AccessOwner     AccessReason = "owner"
	AccessPurchased AccessReason = "purchased"
	AccessDenied    AccessReason = "denied"
)

// AccessDecision 访问判定结果
type AccessDecision struct {
	Granted bool
	Reason  AccessReason
}
