package types

// ThemeAnalysisPrompt asks the LLM to group transcript segments into
// theme/mood ranges. The two %s verbs are the allowed theme list and the
// timestamped transcript lines.
var ThemeAnalysisPrompt = `You are an expert at analyzing spoken-word transcripts for topic and tone changes.
Given a list of transcript segments with start/end times, group consecutive segments that share the same topic or tone.

Requirements:
1. Ranges must be ordered by start time and should cover the whole transcript.
2. "theme" must be one of: %s.
3. "mood" is a free-form single word (e.g. "calm", "upbeat", "serious").
4. Output must be a strict JSON array, nothing else.

Output JSON structure:
[
  {"start": 0, "end": 30, "theme": "ambient", "mood": "calm", "description": "Introduction and welcome"},
  {"start": 30, "end": 90, "theme": "energetic", "mood": "upbeat", "description": "Main argument"}
]

Transcript segments:
%s

Return only the JSON array.`
