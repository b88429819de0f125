package user

type ApiGroup struct {
	LearningApi LearningApi
	FaqApi      FaqApi
}
