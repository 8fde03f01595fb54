package optimize

import "fmt"

func enhancePrompt(jobDescription, examplesContext, resumeText string) string {
	return fmt.Sprintf(`You are an expert resume optimization AI that helps candidates optimize their resumes for specific job descriptions.

Job Description:
%s

%s

Candidate's Current Resume:
%s

Task: Enhance this resume to better align with the job description while maintaining honesty and accuracy.
- Improve the formatting and structure
- Highlight relevant skills and experience
- Use industry-specific keywords from the job description
- Make bullet points more achievement-oriented
- Remove irrelevant information
- Fix any grammar or spelling issues

Return only the enhanced resume without explanations.`, jobDescription, examplesContext, resumeText)
}

func explanationPrompt(originalResume, enhancedResume, jobDescription string) string {
	return fmt.Sprintf(`You previously optimized this resume for a job. Explain the key changes you made and why they improve the candidate's chances.

Original Resume:
%s

Enhanced Resume:
%s

Job Description:
%s

Provide a concise explanation of:
1. The main improvements made
2. How these changes better align with the job requirements
3. Any key keywords that were added
4. Which aspects of the resume were strengthened`, originalResume, enhancedResume, jobDescription)
}

func scorePrompt(resumeJSON, jobDescription string) string {
	return fmt.Sprintf(`You are an ATS scoring expert.
Compare the **resume** and **job description**.
Identify **missing skills**, **keyword matches**, and **alignment score**.
Provide **suggestions** to improve the resume.

Resume (JSON format):
%s

Job Description:
%s

Return structured JSON:
{
    "ats_score": number (1-10),
    "missing_skills": [list of strings],
    "keyword_matches": [list of strings],
    "improvement_suggestions": [list of strings],
    "section_scores": {
        "skills": number (1-10),
        "experience": number (1-10),
        "education": number (1-10),
        "overall_format": number (1-10)
    },
    "detailed_analysis": "string describing why the resume received this score",
    "keyword_density": {
        "resume_keyword_count": number,
        "job_description_keyword_count": number,
        "match_percentage": number
    }
}`, resumeJSON, jobDescription)
}

func comparePrompt(originalResume, optimizedResume, jobDescription string) string {
	return fmt.Sprintf(`You are an ATS scoring expert.
Compare the **original resume**, **optimized resume** and **job description**.
Identify how the optimization improved the resume's ATS score.

Original Resume:
%s

Optimized Resume:
%s

Job Description:
%s

Return structured JSON:
{
    "original_score": number (1-10),
    "optimized_score": number (1-10),
    "score_improvement": number,
    "key_improvements": [list of strings],
    "added_keywords": [list of strings],
    "reformatted_sections": [list of strings],
    "before_after_analysis": "string analyzing the key differences"
}`, originalResume, optimizedResume, jobDescription)
}
