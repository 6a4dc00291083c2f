package httpgin

type RegisterStaffRequest struct {
	ID               string `json:"id" binding:"required"`
	Name             string `json:"name" binding:"required"`
	FatherName       string `json:"father_name"`
	Address          string `json:"address"`
	State            string `json:"state"`
	Email            string `json:"email" binding:"required,email"`
	Contact          string `json:"contact"`
	Password         string `json:"password" binding:"required,min=8"`
	BloodGroup       string `json:"blood_group"`
	EmergencyContact string `json:"emergency_contact"`
	Role             string `json:"role"`
}

type RegisterMemberRequest struct {
	ID               string `json:"id" binding:"required"`
	Name             string `json:"name" binding:"required"`
	FatherName       string `json:"father_name"`
	Address          string `json:"address"`
	State            string `json:"state"`
	Email            string `json:"email" binding:"required,email"`
	Contact          string `json:"contact"`
	BloodGroup       string `json:"blood_group"`
	EmergencyContact string `json:"emergency_contact"`
}

type ActivateSubscriptionRequest struct {
	MemberID    string `json:"member_id" binding:"required"`
	AmountCents int    `json:"amount_cents" binding:"gte=0"`
	Months      int    `json:"months"`
}

type CreateZoneRequest struct {
	Name string `json:"name" binding:"required"`
}

type ProvisionSeatsRequest struct {
	Section string `json:"section" binding:"required"`
	Count   int    `json:"count" binding:"required,gt=0"`
}

type CheckInRequest struct {
	MemberID string `json:"member_id" binding:"required"`
}

type CheckOutRequest struct {
	MemberID string `json:"member_id" binding:"required"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CheckInResponse struct {
	Message string `json:"message"`
	SeatID  string `json:"seat_id"`
}

type CreateZoneResponse struct {
	ZoneID int64 `json:"zone_id"`
}

type ProvisionSeatsResponse struct {
	Created int      `json:"created"`
	SeatIDs []string `json:"seat_ids"`
}

type ActivateSubscriptionResponse struct {
	SubscriptionID int64  `json:"subscription_id"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
}
