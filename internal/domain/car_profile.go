package domain

type CarProfile struct {
	CarNumber   string `json:"car_number"`
	OwnerName   string `json:"owner_name"`
	CarModel    string `json:"car_model"`
	PhoneNumber string `json:"phone_number"`
}
