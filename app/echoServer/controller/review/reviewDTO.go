package review

type ReviewReq struct {
	Rating   int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comments string `json:"comments"`
}
