// Package vidsynth answers questions about video transcripts in-process.
//
// A transcript is split into overlapping chunks, the chunks are embedded into
// an in-memory vector store, and questions are answered by a generative model
// from the chunks most similar to the question.
//
//	client, _ := vidsynth.New(
//	    vidsynth.WithEmbedder(myEmbedder),
//	    vidsynth.WithGenerator(myGenerator),
//	    vidsynth.WithCapacity(5),
//	)
//	chunks, _ := client.Chunk(transcript, map[string]string{"video_id": "dQw4w9WgXcQ"})
//	id, _ := client.CreateStore(ctx, chunks)
//	ans, _ := client.Ask(ctx, "What is the talk about?", id)
//	fmt.Println(ans.Text)
//
// Stores live in memory only. At most Capacity stores are kept; registering one
// more drops the oldest, after which its id resolves to ErrNotFound.
package vidsynth
