// Package resumeforge provides an embedded Go client for the resumeforge
// resume optimization engine: an in-process vector index over example resumes
// plus LLM-backed enhancement, ATS scoring and parsing.
//
//	client, _ := resumeforge.New(ctx,
//	    resumeforge.WithMemoryStore(),
//	    resumeforge.WithEmbedder(myEmbedder),
//	    resumeforge.WithGenerator(myGenerator),
//	)
//	defer client.Close()
//
//	_, _ = client.AddDocument(ctx, exampleResume, map[string]any{"role": "backend"})
//	result, _ := client.Enhance(ctx, resumeText, jobDescription)
//
// The client wires the same services as the HTTP server, without the HTTP
// layer. Embedding and generation providers are supplied by the caller, so the
// SDK carries no API keys of its own.
package resumeforge
