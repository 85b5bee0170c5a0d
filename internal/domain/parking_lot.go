package domain

type ParkingLot struct {
	ID        int    `json:"id"`
	Location  string `json:"location"`
	Capacity  int    `json:"capacity"`
	Available int    `json:"available"`
}

// IsFull reports whether no slot is left in the lot.
func (l ParkingLot) IsFull() bool {
	return l.Available <= 0
}

type ParkingLotDTO struct {
	ID       int    `json:"id" yaml:"id"`
	Location string `json:"location" yaml:"location"`
	Capacity int    `json:"capacity" yaml:"capacity"`
}
