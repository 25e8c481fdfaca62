package domain

// OTPRecord is the live one-time-passcode challenge for a single email
// address. Only the keyed hash of the code is stored; the plaintext exists
// solely in the delivery message. At most one record is live per email:
// re-issuing overwrites it and resets Retries.
type OTPRecord struct {
	OTPHash string `json:"otp"`
	Retries int    `json:"retries"`
}
