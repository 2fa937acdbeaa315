package provider_test

import (
	"context"
	"fmt"
	"log"

	"genchat/model"
	"genchat/provider"
)

// ExampleNewProvider demonstrates creating a SiliconFlow generator using the factory.
func ExampleNewProvider() {
	g, err := provider.NewProvider(provider.Config{
		Type:   provider.ProviderTypeSiliconFlow,
		APIKey: "sk-...",
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Provider created: %T\n", g)
	// Output: Provider created: *provider.OpenAIProvider
}

// ExampleMapProviderIDToType shows how config ids map to provider types.
func ExampleMapProviderIDToType() {
	fmt.Println(provider.MapProviderIDToType(""))
	fmt.Println(provider.MapProviderIDToType("OpenRouter"))
	fmt.Println(provider.DefaultBaseURL(provider.ProviderTypeOllama))
	// Output:
	// siliconflow
	// openrouter
	// http://localhost:11434
}

// ExampleOpenAIProvider_SubmitVideoJob shows a video job being submitted and
// polled once.
//
// Note: This example doesn't actually run because it requires a live API key.
func ExampleOpenAIProvider_SubmitVideoJob() {
	p, err := provider.NewOpenAIProvider(provider.DefaultSiliconFlowURL, "sk-...", nil)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	sub, err := p.SubmitVideoJob(ctx, model.VideoRequest{
		Model:     "Lightricks/LTX-Video",
		Prompt:    "waves on a beach at dusk",
		ImageSize: "768x512",
	})
	if err != nil {
		log.Fatal(err)
	}

	st, err := p.PollVideoJob(ctx, sub.RequestID)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(st.Status, st.FirstURL())
}

// ExampleOllamaProvider_ListModels demonstrates listing available models.
//
// Note: This example doesn't actually run because it requires a live Ollama server.
func ExampleOllamaProvider_ListModels() {
	p, err := provider.NewOllamaProvider("http://localhost:11434", nil)
	if err != nil {
		log.Fatal(err)
	}

	models, err := p.ListModels(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	for _, name := range models {
		fmt.Println(name)
	}
}
