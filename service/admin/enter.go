package admin

type ServiceGroup struct {
	ReviewService ReviewService
}

func NewServiceGroup() ServiceGroup {
	return ServiceGroup{
		ReviewService: NewReviewService(),
	}
}
