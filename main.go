package main

import (
	"context"
	"fmt"
	"time"

	"gitee.com/taoJie_1/faq-agent/global"
	"gitee.com/taoJie_1/faq-agent/initialize"
	"gitee.com/taoJie_1/faq-agent/model/dto"
	"gitee.com/taoJie_1/faq-agent/service"
	"gitee.com/taoJie_1/faq-agent/service/admin"
	"gitee.com/taoJie_1/faq-agent/service/learning"
	"gitee.com/taoJie_1/faq-agent/task"
)

func main() {
	startTime := time.Now()
	initSvc := initialize.New()

	if err := initSvc.InitTz(); err != nil {
		panic(fmt.Sprintf("初始化时区失败: %v", err))
	}

	if err := initSvc.InitLog(); err != nil {
		panic(fmt.Sprintf("初始化日志失败[fbvk89]: %v", err))
	}

	defer func() {
		if p := recover(); p != nil {
			global.Log.Errorln(p)
		}
	}()

	if err := initSvc.Run(); err != nil {
		global.Log.Fatalf("关键服务初始化失败，程序终止: %v", err)
	}
	defer initSvc.Close()

	initSvc.InitLogger()

	// 服务组依赖全局客户端, 必须在Run之后组装
	service.Service.LearningServiceGroup = learning.NewServiceGroup()
	service.Service.AdminServiceGroup = admin.NewServiceGroup()

	taskManager := task.NewManager(
		service.Service.LearningServiceGroup.PipelineService,
		service.Service.AdminServiceGroup.ReviewService,
	)

	if initialize.Act != "" {
		dispatchAction(initialize.Act, taskManager)
		return
	}

	initialize.Start(initSvc, taskManager, startTime)
}

func dispatchAction(action string, taskManager *task.Manager) {
	global.Log.Infof("开始执行后台任务: %s", action)
	var err error
	switch action {
	case "learn":
		// 对全部历史数据执行一轮学习
		_, err = service.Service.LearningServiceGroup.PipelineService.Run(context.Background(), &dto.ExtractionCriteria{})
	case "export":
		err = taskManager.KbExporter()
	default:
		fmt.Println("未知的任务参数, 可选值: learn, export")
		return
	}

	if err == nil {
		global.Log.Infof("后台任务 '%s' 执行成功", action)
	} else {
		global.Log.Errorf("后台任务 '%s' 执行失败: %v", action, err)
	}
}
