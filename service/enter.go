package service

import (
	"gitee.com/taoJie_1/faq-agent/service/admin"
	"gitee.com/taoJie_1/faq-agent/service/learning"
)

type ServiceGroup struct {
	LearningServiceGroup learning.ServiceGroup
	AdminServiceGroup    admin.ServiceGroup
}

var Service = new(ServiceGroup)
