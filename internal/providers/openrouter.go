package providers

func newOpenRouterClient(opts ClientOptions) Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://openrouter.ai/api/v1"
	}
	opts.Model = modelOr(opts, "openai/gpt-4o-mini")
	opts.Setting = settingOr(opts, "OPENROUTER_API_KEY")
	opts.Headers = copyHeaders(opts.Headers)
	if _, ok := opts.Headers["X-Title"]; !ok {
		opts.Headers["X-Title"] = "polymind"
	}
	return newOpenAICompatibleClient(OpenAICompatibleSettings{Name: "openrouter", RequireAPIKey: true}, opts)
}
