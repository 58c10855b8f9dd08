package providers

func newOpenAIClient(opts ClientOptions) Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.openai.com/v1"
	}
	opts.Model = modelOr(opts, "gpt-4")
	opts.Setting = settingOr(opts, "OPENAI_API_KEY")
	return newOpenAICompatibleClient(OpenAICompatibleSettings{Name: "openai", RequireAPIKey: true}, opts)
}
