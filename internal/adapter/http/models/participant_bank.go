package models

type ParticipantBankResponse struct {
	BankName string `json:"bankName"`
	BankCode string `json:"bankCode"`
	BIC      string `json:"bic"`
}
