package admin

type ApiGroup struct {
	ReviewApi ReviewApi
}
