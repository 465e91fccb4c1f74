// ABOUTME: Wire types for the Papayal wallet API
// ABOUTME: Field names match the backend's JSON exactly

package client

// TokenPair is the credential pair returned by login, signup, and refresh.
// expires_in is advisory; the client reacts to 401s instead of tracking it.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// User is the authenticated profile.
type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Role           string `json:"role,omitempty"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	AvatarThumbURL string `json:"avatar_thumb_url,omitempty"`
}

// GiftCard is a wallet entry.
type GiftCard struct {
	ID                    string `json:"id"`
	MerchantID            string `json:"merchant_id,omitempty"`
	MerchantName          string `json:"merchant_name,omitempty"`
	MerchantLogoURL       string `json:"merchant_logo_url,omitempty"`
	StoreName             string `json:"store_name,omitempty"`
	Name                  string `json:"name,omitempty"`
	AmountCents           int64  `json:"amount_cents"`
	RemainingBalanceCents int64  `json:"remaining_balance_cents"`
	Currency              string `json:"currency"`
	Status                string `json:"status"`
	ExpiresAt             string `json:"expires_at,omitempty"`
	SenderID              string `json:"sender_id,omitempty"`
	RecipientID           string `json:"recipient_id,omitempty"`
	CreatedAt             string `json:"created_at,omitempty"`
	UpdatedAt             string `json:"updated_at,omitempty"`
}

// RedemptionToken is a short-lived in-store redemption credential.
type RedemptionToken struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}
