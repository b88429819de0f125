package enum

// FaqCategory FAQ条目的预置分类
type FaqCategory string

const (
	CategoryAuthentication FaqCategory = "authentication"
	CategoryBilling        FaqCategory = "billing"
	CategoryTechnical      FaqCategory = "technical"
	CategoryAccount        FaqCategory = "account"
	CategoryGeneral        FaqCategory = "general"
)

type SystemPrompt string

const (
	// 用于根据问答对改写出标准FAQ答案
	SystemPromptGenFaqAnswer SystemPrompt = `你是一个FAQ知识库编辑AI。请根据下面提供的"用户问题"和"客服答案"，改写出一条标准的FAQ答案。
- 风格：简洁、准确、面向所有用户，去除口语化的寒暄和与具体用户相关的信息。
- 保留答案中的操作步骤、编号列表等结构化内容。
- 输出：只输出改写后的答案正文，不要包含任何解释、标签或引号。
- 回答的语言应与输入的问答语言一致。`

	// 用于为问答对选择分类标签
	SystemPromptCategorize SystemPrompt = `你是一个文本分类AI。请阅读下面的"问题"和"答案"，从候选分类中选择最匹配的一个。
候选分类(只能选其一): "authentication", "billing", "technical", "account", "general"。
- 如果无法确定，选择 "general"。
- 输出：只输出分类标签本身，不要包含任何解释、标点或引号。`
)
