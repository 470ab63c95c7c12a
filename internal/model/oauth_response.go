package model

// LoginResponse is returned by every login or register endpoint
type LoginResponse struct {
	User        User              `json:"user"`
	Company     *Company          `json:"company,omitempty"`
	Applicant   *ApplicantProfile `json:"applicant,omitempty"`
	AccessToken string            `json:"access_token"`
}

// SetAccessToken sets the access token in the LoginResponse
func (r *LoginResponse) SetAccessToken(accessToken string) {
	r.AccessToken = accessToken
}
